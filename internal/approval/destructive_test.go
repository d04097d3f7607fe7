package approval

import "testing"

func TestIsDestructiveCommand(t *testing.T) {
	cases := []struct {
		cmd  string
		want bool
	}{
		{"rm -rf /tmp/x", true},
		{"/bin/rm -rf /tmp/x", true},
		{"git push --force", true},
		{"git status", false},
		{"ls -la", false},
		{"npm install lodash", false},
	}
	for _, c := range cases {
		if got := IsDestructiveCommand(c.cmd); got != c.want {
			t.Errorf("IsDestructiveCommand(%q) = %v, want %v", c.cmd, got, c.want)
		}
	}
}
