package main

import "testing"

func TestRunReplacementCompletes(t *testing.T) {
	runReplacement(4, 4000, 64, 32, 0.7)
}

func TestRunDeamortizedCompletes(t *testing.T) {
	runDeamortized(4, 4000, 64, 32, 0.7)
}
