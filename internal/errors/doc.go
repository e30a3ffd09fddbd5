// Package errors provides the coded, actionable errors used across loom.
//
// Every misuse of the runtime and every template or configuration failure is
// reported as an *Error carrying a stable code (e.g. "E101") that maps to a
// short message, a longer explanation and a documentation link.
//
// # Error Categories
//
//   - lifecycle: scope and context misuse (cleanup outside a scope, ...)
//   - template: markup that cannot be compiled or holes that cannot be bound
//   - render: failures while reconciling mounted subtrees
//   - component: invalid component definitions
//   - config: invalid configuration files or environment overrides
//
// # Usage
//
//	err := errors.New("E201").
//	    WithLocation("templates/card.html", 3, 0).
//	    WithSuggestion("Close the <div> opened on line 1")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Template syntax error
//	//
//	//   templates/card.html:3
//	//
//	//      2 │   <h2>${}</h2>
//	//   →  3 │ </span>
//	//      4 │
//	//
//	//   Hint: Close the <div> opened on line 1
package errors
