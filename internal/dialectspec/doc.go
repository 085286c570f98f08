// Package dialectspec compiles dialect definitions written in CUE.
//
//	dialect: oracle: {
//		base:              "sql"
//		placeholder:       "numbered"
//		quote_identifiers: true
//		type_names: String: "varchar2"
//		templates: {
//			CONCAT:  "concat({0},{1})"
//			MATCHES: "regexp_like({0},{1})"
//		}
//	}
//
// Every field except the name is optional. Settings not given are
// inherited from the base. Template keys are operator names as printed by
// expr.Operator.String, matched case-insensitively.
package dialectspec
