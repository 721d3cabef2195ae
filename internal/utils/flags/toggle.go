package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue  = "true"
	toggleFalseCanonicalValue = "false"
	toggleYesLiteral          = "yes"
	toggleNoLiteral           = "no"
	toggleOnLiteral           = "on"
	toggleOffLiteral          = "off"
	toggleOneLiteral          = "1"
	toggleZeroLiteral         = "0"
	toggleParseErrorTemplate  = "invalid toggle value %q"
	toggleValueTypeName       = "toggle"
)

var (
	trueLiteralSet = map[string]struct{}{
		toggleTrueCanonicalValue: {},
		toggleYesLiteral:         {},
		toggleOnLiteral:          {},
		toggleOneLiteral:         {},
	}
	falseLiteralSet = map[string]struct{}{
		toggleFalseCanonicalValue: {},
		toggleNoLiteral:           {},
		toggleOffLiteral:          {},
		toggleZeroLiteral:         {},
	}
)

// toggleFlagValue adapts a bool target to pflag.Value with yes/no style parsing.
type toggleFlagValue struct {
	target *bool
}

func (value *toggleFlagValue) String() string {
	if value.target != nil && *value.target {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Set(rawValue string) error {
	loweredValue := strings.ToLower(strings.TrimSpace(rawValue))
	if _, isTrue := trueLiteralSet[loweredValue]; isTrue {
		*value.target = true
		return nil
	}
	if _, isFalse := falseLiteralSet[loweredValue]; isFalse {
		*value.target = false
		return nil
	}
	return fmt.Errorf(toggleParseErrorTemplate, rawValue)
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeName
}

// AddToggleFlag registers a boolean toggle flag that accepts yes/no style
// values and can also be supplied bare (--flag implies true).
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}

	*target = defaultValue
	flagSet.Var(&toggleFlagValue{target: target}, name, usage)

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag != nil {
		registeredFlag.NoOptDefVal = toggleTrueCanonicalValue
	}
}
