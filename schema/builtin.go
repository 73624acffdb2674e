package schema

// builtinNames is the whitelist of XSD built-in datatypes a type
// reference may name without resolving against a Model's TypeCache.
// Membership is all structural coverage needs to know: a builtin leaf
// terminates descent.
var builtinNames = map[string]bool{
	"string": true, "boolean": true, "decimal": true, "float": true, "double": true,
	"duration": true, "dateTime": true, "time": true, "date": true,
	"gYearMonth": true, "gYear": true, "gMonthDay": true, "gDay": true, "gMonth": true,
	"hexBinary": true, "base64Binary": true, "anyURI": true, "QName": true, "NOTATION": true,
	"normalizedString": true, "token": true, "language": true, "Name": true, "NCName": true,
	"ID": true, "IDREF": true, "IDREFS": true, "ENTITY": true, "ENTITIES": true,
	"NMTOKEN": true, "NMTOKENS": true,
	"integer": true, "nonPositiveInteger": true, "negativeInteger": true,
	"long": true, "int": true, "short": true, "byte": true,
	"nonNegativeInteger": true, "unsignedLong": true, "unsignedInt": true,
	"unsignedShort": true, "unsignedByte": true, "positiveInteger": true,
	"anyType": true, "anySimpleType": true,
}

// IsBuiltin reports whether name is one of the fixed-whitelist XSD
// built-in datatypes.
func IsBuiltin(name string) bool {
	return builtinNames[name]
}
