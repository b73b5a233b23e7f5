package diag

import "fmt"

// Code identifies a diagnostic kind. Ranges are grouped per producing phase
// so that codes stay stable as new ones are added.
type Code uint16

const (
	UnknownCode Code = 0

	// Runnable plugin, generation phase (5000-5099).
	RunGenericParams Code = 5001

	// Runnable plugin, signature analysis phase (5100-5199).
	RunBadReturnType       Code = 5101
	RunBadParamCount       Code = 5102
	RunBadInputType        Code = 5103
	RunBadInputMutability  Code = 5104
	RunBadOutputType       Code = 5105
	RunBadOutputMutability Code = 5106
)

func (c Code) String() string {
	switch c {
	case RunGenericParams:
		return "RUN5001"
	case RunBadReturnType:
		return "RUN5101"
	case RunBadParamCount:
		return "RUN5102"
	case RunBadInputType:
		return "RUN5103"
	case RunBadInputMutability:
		return "RUN5104"
	case RunBadOutputType:
		return "RUN5105"
	case RunBadOutputMutability:
		return "RUN5106"
	case UnknownCode:
		return "GEN0000"
	}
	return fmt.Sprintf("GEN%04d", uint16(c))
}
