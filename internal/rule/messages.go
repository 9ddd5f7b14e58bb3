package rule

// Diagnostic templates. Placeholders are filled by Render.
const (
	msgTypeNotFound = "A type by the name of {type} could not be found. " +
		"Check case, spelling, and that you created your type in the right package."
	msgBuildFailed = "Your package does not build, so type {type} cannot be checked. {actual}"

	msgFieldCount = "You have a lot of instance variables in type {type}. " +
		"Perhaps some of them should be local variables?"
	msgTypeModifiers = "The modifiers for type {type} are not correct. {diff}"
	msgSupertype     = "The supertype of type {type} is not correct.\n  Expected: {expected}\n    Actual: {actual}"
	msgImplements    = "Type {type} must implement interface {expected}."

	msgMissingField  = "You need a {member} field in type {type}."
	msgMissingMember = "You need a {member} {kind} in type {type} taking {arity} argument(s){types}."
	msgFieldType     = "I found the wrong type for field {member} in type {type}.\n  Expected: {expected}\n    Actual: {actual}"
	msgReturnType    = "Your {kind} {signature} in type {type} has the wrong return type.\n  Expected: {expected}\n    Actual: {actual}"
	msgModifiers     = "The modifiers for {kind} {signature} in type {type} are not correct. {diff}"
	msgMustThrow     = "Your {kind} {signature} in type {type} must declare the failure type {expected}."
	msgMustNotThrow  = "Your {kind} {signature} in type {type} must handle {expected} itself, not return it."

	msgUnspecifiedMethod = "Method {type}.{actual} is not required. " +
		"Any methods you add should be unexported."
	msgUnspecifiedCtor = "Constructor {actual} for type {type} is not required. " +
		"Any constructors you add should be unexported."
	msgUnspecifiedStatic = "Field {type}.{actual} is not required. " +
		"Any package-level values of type {type} you add should be unexported."
	msgUnspecifiedInstance = "Instance variables must be unexported. {type}.{actual} is not. " +
		"The only exported values should be required constants."

	msgImport = "Type {type} imports {actual}. You may only import packages from the standard library" +
		"{expected}. Not every machine has the others."
	msgBoolCompare = "Type {type} contains the comparison \"{actual}\". Simplify your code; you never need " +
		"to compare to a boolean literal. Eliminate \"== true\" and \"!= false\" altogether. " +
		"Rewrite \"== false\" and \"!= true\" to use the ! operator. With meaningful variable names, " +
		"your code will be much more readable without these comparisons to boolean literals."
)
