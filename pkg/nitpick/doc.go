// Package nitpick decides which rule-derived comments a pull request needs.
//
// A Rule selects changed files with path filters and, optionally, regular
// expressions over each file's patch. Reconcile combines the rules, the
// changes of a pull request or push, and the comments already posted on the
// pull request into a TargetState:
//
//   - CommentsToAdd: applicable rules without a comment yet
//   - CommentsToUpdate: existing comments whose footer must be refreshed
//   - CommentsToResolve: active comments whose rule no longer applies
//   - CommentsToReactivate: dismissed comments of blocking rules that apply again
//
// plus a Conclusion that fails when any blocking rule applies.
//
// Existing comments are tied to rules by prefix: every posted body starts
// with the rule markdown followed by CannedTextSeparator. Whether a comment
// is still open is read from its reactions (see IsActive).
//
// Everything in this package is a pure function of its inputs; reading
// comments and writing the resulting actions live in pkg/github and
// pkg/publisher.
package nitpick
