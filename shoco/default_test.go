package shoco

import "testing"

func TestDefaultUnsetIsNil(t *testing.T) {
	// Save and restore whatever the process-wide default already holds so
	// this test doesn't leak state into others in the package.
	prev := Default()
	defer SetDefault(prev)

	SetDefault(nil)
	if Default() != nil {
		t.Fatal("Default() after SetDefault(nil) is not nil")
	}
}

func TestSetDefaultRoundTrip(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	m := tinyModelForFuzz()
	SetDefault(m)
	if Default() != m {
		t.Fatal("Default() did not return the Model passed to SetDefault")
	}
}
