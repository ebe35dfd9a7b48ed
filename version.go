package launchagent

// Version is the current version of the go-launchagent library
const Version = "0.1.0"
