package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger_Redirect(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("computed %d cells", 40)
	if got != "computed 40 cells" {
		t.Errorf("captured log = %q", got)
	}
}

func TestSetLogger_NilInstallsNoop(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("dropped %s", "message")
}
