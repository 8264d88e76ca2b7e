package runtime

import (
	"strings"
	"testing"
)

func TestImageTag(t *testing.T) {
	tag := imageTag("/some/base.tar")

	if !strings.HasPrefix(tag, "import/") {
		t.Fatalf("tag %q missing import/ prefix", tag)
	}
	if !strings.HasSuffix(tag, ":latest") {
		t.Fatalf("tag %q missing :latest suffix", tag)
	}

	if imageTag("/some/base.tar") != tag {
		t.Fatal("imageTag is not deterministic")
	}

	if imageTag("/other/base.tar") == tag {
		t.Fatal("different paths produced the same tag")
	}
}
