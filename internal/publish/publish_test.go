package publish

import "testing"

func TestObjectKey(t *testing.T) {
	got := ObjectKey("acme-group", "acme-nl", "2024", "local-file.pdf")
	want := "acme-group/acme-nl/2024/local-file.pdf"
	if got != want {
		t.Errorf("ObjectKey = %q, want %q", got, want)
	}
}
