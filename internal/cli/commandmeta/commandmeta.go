package commandmeta

import "strings"

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
	OutputPolicyYAMLDefaultTextOrYAML
)

func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "ddiconf apply",
		"ddiconf update",
		"ddiconf delete":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "ddiconf config show":
		return OutputPolicyYAMLDefaultTextOrYAML
	case "ddiconf config current":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
