package diag

// Severity ranks a diagnostic. Plugin checks are soft: even SevError never
// aborts the pipeline, it only decides the process exit status.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError marks a contract violation in the checked code.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
