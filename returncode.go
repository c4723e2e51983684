// returncode.go: internal tagged result codes for BaseTable operations
package growtable

// ReturnCode is the tagged result returned internally by BaseTable
// operations. Handle translates these into the bool, (value, bool) or
// *Iterator results documented on each operation.
type ReturnCode uint8

const (
	ReturnError ReturnCode = iota
	ReturnSuccessInsert
	ReturnSuccessUpdate
	ReturnSuccessDelete
	ReturnNotFound
	ReturnAlreadyUsed
	ReturnFull
	ReturnInvalid
)

// Successful reports whether code represents a successful mutation.
func (c ReturnCode) Successful() bool {
	switch c {
	case ReturnSuccessInsert, ReturnSuccessUpdate, ReturnSuccessDelete:
		return true
	default:
		return false
	}
}

func (c ReturnCode) String() string {
	switch c {
	case ReturnSuccessInsert:
		return "success-in"
	case ReturnSuccessUpdate:
		return "success-up"
	case ReturnSuccessDelete:
		return "success-del"
	case ReturnNotFound:
		return "not-found"
	case ReturnAlreadyUsed:
		return "already-used"
	case ReturnFull:
		return "full"
	case ReturnInvalid:
		return "invalid"
	default:
		return "error"
	}
}
