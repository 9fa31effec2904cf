// Package template renders {{name}} placeholders in prompts and response
// templates from node parameters and the node's runtime input.
package template
