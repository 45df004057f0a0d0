// Package mesher builds the groove-mesher stage invocation and parses its
// textual progress output.
package mesher
