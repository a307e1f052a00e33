// Command inntest drives an NNTP conformance run against a subject server,
// reporting a per-test fail/xfail/compat/skip table and exiting non-zero
// when any test recorded a fail.
package main

func main() {
	Execute()
}
