package launchagent

import (
	"fmt"
	"os"
	"strings"
)

// GenerateDescriptor renders the launchd descriptor for a resolved
// config. When the config names a descriptor override, that file's
// contents are returned unmodified and no substitution occurs; the
// operator takes full responsibility for its correctness.
//
// The rendered document declares the service label, the configured
// boolean options, and a ProgramArguments array of exactly three
// strings: the shell interpreter, the staged launcher script, and the
// staging directory.
func GenerateDescriptor(cfg *InstallConfig, id Identity, shell string) (string, error) {
	if cfg.DescriptorOverride != "" {
		data, err := os.ReadFile(cfg.DescriptorOverride)
		if err != nil {
			return "", fmt.Errorf("reading descriptor override: %w", err)
		}
		return string(data), nil
	}

	fragment, err := RenderOptions(cfg.Options)
	if err != nil {
		return "", err
	}

	if shell == "" {
		shell = DefaultShellPath
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>`)
	sb.WriteString(escapeXML(id.ServiceName))
	sb.WriteString(`</string>
`)
	sb.WriteString(fragment)
	sb.WriteString(`	<key>ProgramArguments</key>
	<array>
		<string>`)
	sb.WriteString(escapeXML(shell))
	sb.WriteString(`</string>
		<string>`)
	sb.WriteString(escapeXML(id.RunScriptPath()))
	sb.WriteString(`</string>
		<string>`)
	sb.WriteString(escapeXML(id.DestDir))
	sb.WriteString(`</string>
	</array>
</dict>
</plist>
`)

	return sb.String(), nil
}

// escapeXML escapes special characters for XML
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
