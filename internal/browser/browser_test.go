package browser

import (
	"strings"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{PageLoadWait: -time.Second}.withDefaults()
	if c.WindowWidth != 1920 || c.WindowHeight != 1080 {
		t.Fatalf("expected a 1920x1080 window but got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.PageLoadWait != 0 {
		t.Fatalf("expected a negative wait to be cleared but got %v", c.PageLoadWait)
	}
	c = Config{WindowWidth: 1280, WindowHeight: 800}.withDefaults()
	if c.WindowWidth != 1280 || c.WindowHeight != 800 {
		t.Fatalf("expected the configured window to be kept but got %dx%d", c.WindowWidth, c.WindowHeight)
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(Config{}.withDefaults().allocatorOptions())
	full := len(Config{UserAgent: "ua", UserDataDir: "/tmp/profile", ExecPath: "/usr/bin/chromium"}.withDefaults().allocatorOptions())
	if full != base+3 {
		t.Fatalf("expected 3 extra options but got %d", full-base)
	}
}

func TestScriptsQuoteInput(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "document query",
			script: queryScript("", `button[aria-label="Page 2"]`),
			want:   []string{`querySelectorAll("button[aria-label=\"Page 2\"]")`, "var root = document;"},
		},
		{
			name:   "scoped query",
			script: queryScript("ab12-7", "a"),
			want:   []string{`'[data-goapply-key="' + "ab12-7" + '"]'`, "root = el;", "return {stale: true};"},
		},
		{
			name:   "value with quotes and newline",
			script: setValueScript("ab12-1", "it's \"fine\"\n"),
			want:   []string{`desc.set.call(el, "it's \"fine\"\n");`},
		},
		{
			name:   "select",
			script: selectScript("ab12-2", "5+"),
			want:   []string{`var want = "5+";`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, w := range tc.want {
				if !strings.Contains(tc.script, w) {
					t.Fatalf("expected script to contain %q but got:\n%s", w, tc.script)
				}
			}
			if !strings.HasPrefix(tc.script, "(function() {") || !strings.HasSuffix(tc.script, "})()") {
				t.Fatalf("expected an immediately invoked function but got:\n%s", tc.script)
			}
		})
	}
}

func TestKeySelector(t *testing.T) {
	if got := keySelector("x-1"); got != `[data-goapply-key="x-1"]` {
		t.Fatalf("expected a key attribute selector but got %s", got)
	}
}
