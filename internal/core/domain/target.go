package domain

import "regexp"

// Builtin target names. Both print the target listing.
const (
	HelpTarget = "help"
	ListTarget = "list"
)

// DefaultTarget runs when no target is given on the command line.
const DefaultTarget = HelpTarget

// InternalPrefix marks a target as internal when it starts its name.
const InternalPrefix = "_"

var (
	targetNamePattern   = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
	variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Command is a single shell command line of a target.
type Command struct {
	Script        string
	IgnoreFailure bool
	Silent        bool
}

// Target is a named, ordered sequence of commands run as a unit.
type Target struct {
	Name         InternedString
	Description  string
	Commands     []Command
	Dependencies []InternedString
	RequiredEnv  []string
	Internal     bool
	Builtin      bool
}

// Variable is a named default substituted into command lines.
type Variable struct {
	Name  string
	Value string
}

// Invocation is one command line bound to the context it runs in.
type Invocation struct {
	Target string
	Script string
	Dir    string
	Env    []string
	Args   []string
	Silent bool
}

// IsReservedTargetName reports whether name belongs to a builtin target.
func IsReservedTargetName(name string) bool {
	return name == HelpTarget || name == ListTarget
}

// IsValidTargetName reports whether name can be declared as a target.
func IsValidTargetName(name string) bool {
	return targetNamePattern.MatchString(name)
}

// IsValidVariableName reports whether name is a shell identifier.
func IsValidVariableName(name string) bool {
	return variableNamePattern.MatchString(name)
}

func builtinTargets() []*Target {
	return []*Target{
		{
			Name:        NewInternedString(HelpTarget),
			Description: "Show this listing",
			Builtin:     true,
		},
		{
			Name:        NewInternedString(ListTarget),
			Description: "Show this listing",
			Builtin:     true,
		},
	}
}
