package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Category selects the fixed account template a payload-driven run hands
// to the executor. The set is closed: adding a benchmark shape means
// adding a variant here, not extending a lookup table at runtime.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryCreateAccount
	CategoryTransfer
	CategoryLog
)

func (c Category) String() string {
	switch c {
	case CategoryCreateAccount:
		return "create_account"
	case CategoryTransfer:
		return "transfer"
	case CategoryLog:
		return "log"
	default:
		return "generic"
	}
}

// ParseCategory maps a declared category name to its variant.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "create_account":
		return CategoryCreateAccount, nil
	case "transfer":
		return CategoryTransfer, nil
	case "log":
		return CategoryLog, nil
	case "generic":
		return CategoryGeneric, nil
	default:
		return CategoryGeneric, fmt.Errorf("unknown category %q", s)
	}
}

// InferCategory guesses a category from the benchmark identifier. Older
// declarations carry no category field, so the id text is all there is
// to go on; declarations should set the field explicitly instead.
func InferCategory(benchID string) Category {
	switch {
	case strings.Contains(benchID, "create_account"):
		return CategoryCreateAccount
	case strings.Contains(benchID, "transfer"):
		return CategoryTransfer
	case strings.Contains(benchID, "log"):
		return CategoryLog
	default:
		return CategoryGeneric
	}
}

// NumAccounts is the account-count hint recorded for a payload-driven
// run of this category.
func (c Category) NumAccounts() int {
	switch c {
	case CategoryCreateAccount, CategoryTransfer:
		return 3
	case CategoryLog:
		return 0
	default:
		return 1
	}
}

// AccountSpecs is the fixed account template handed to the executor for
// a payload-driven run. Log and generic runs pass no accounts.
func (c Category) AccountSpecs() []AccountSpec {
	switch c {
	case CategoryCreateAccount:
		return []AccountSpec{
			{Name: "funder", Key: "funder_key", Signer: true, Writable: true, Lamports: 10000000000, Owner: "system"},
			{Name: "new_account", Key: "new_account_key", Signer: true, Writable: true, Owner: "system"},
			{Name: "system_program", Key: "system_key", Owner: "system"},
		}
	case CategoryTransfer:
		return []AccountSpec{
			{Name: "source", Key: "source_key", Signer: true, Writable: true, Lamports: 20000000000, Owner: "system"},
			{Name: "destination", Key: "dest_key", Writable: true, Owner: "system"},
			{Name: "system_program", Key: "system_key", Owner: "system"},
		}
	default:
		return nil
	}
}

// AccountSpec describes one account the executor should materialize
// before invoking the program.
type AccountSpec struct {
	Name     string
	Key      string
	Signer   bool
	Writable bool
	Lamports uint64
	DataLen  uint64
	Owner    string
}

// String renders the colon-separated tuple the executor parses:
// name:key:signer:writable:lamports:dataLen:owner.
func (a AccountSpec) String() string {
	return strings.Join([]string{
		a.Name,
		a.Key,
		strconv.FormatBool(a.Signer),
		strconv.FormatBool(a.Writable),
		strconv.FormatUint(a.Lamports, 10),
		strconv.FormatUint(a.DataLen, 10),
		a.Owner,
	}, ":")
}
