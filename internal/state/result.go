// Package state is the declarative layer over dbadmin: each call
// reports what was (or would be) done using the familiar
// name/result/comment/changes record. A nil Result means the state
// would make changes but ran in test mode.
package state

import "strings"

type Result struct {
	Name    string                 `json:"name"`
	Result  *bool                  `json:"result"`
	Comment string                 `json:"comment"`
	Changes map[string]interface{} `json:"changes"`
}

func newResult(name string) Result {
	return Result{Name: name, Changes: map[string]interface{}{}}
}

func (r *Result) succeed(comment string) {
	ok := true
	r.Result = &ok
	r.Comment = comment
}

func (r *Result) fail(comment string) {
	ok := false
	r.Result = &ok
	r.Comment = comment
}

// pend marks the test-mode outcome: changes are needed but none were
// made.
func (r *Result) pend(comments ...string) {
	r.Result = nil
	r.Comment = strings.Join(comments, "\n")
}
