// version.go: module version constant
package growtable

// Version of the growtable library.
const Version = "v0.1.0-dev"
