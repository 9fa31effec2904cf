// Package util holds small helpers shared by paiflow packages.
package util
