// Package vcs models the git command-line tool as an injectable capability.
//
// Tool maps an Operation and a working directory to the tool's stdout.
// ExecTool is the subprocess implementation; ToolFunc lets tests substitute
// a fake.
package vcs
