// Package errors provides coded, actionable errors for the observable CLI
// and feed server.
//
// Each error has a unique code that maps to a short message, a detailed
// explanation, a category and the HTTP status the feed answers with:
//   - E1xx: configuration errors
//   - E2xx: feed errors
//
// # Usage
//
//	err := errors.New("E103").
//	    WithDetail("port 70000 is out of range").
//	    WithSuggestion("Pick a port between 1 and 65535")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E103: Invalid port
//	//
//	//   port 70000 is out of range
//	//
//	//   Hint: Pick a port between 1 and 65535
package errors
