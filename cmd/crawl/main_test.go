package main

import "testing"

func TestRunUnknownTargetExitsNonZero(t *testing.T) {
	t.Setenv("ARTIFACT_STORE", "local")
	t.Setenv("ARTIFACT_LOCAL_DIR", t.TempDir())
	prev := *target
	*target = "crawl_envelope_prices_printpac"
	t.Cleanup(func() { *target = prev })

	if code := run(); code != 1 {
		t.Fatalf("exit code: want=1 got=%d", code)
	}
}
