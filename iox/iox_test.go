package iox

import (
	"errors"
	"testing"
)

type closeRecorder struct{ closes int }

func (c *closeRecorder) Close() error {
	c.closes++
	return errors.New("close failed")
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *closeRecorder)
	}{
		{"DiscardClose", func(c *closeRecorder) { DiscardClose(c) }},
		{"CloseFunc", func(c *closeRecorder) { CloseFunc(c)() }},
		{"DiscardErr", func(c *closeRecorder) { DiscardErr(c.Close) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &closeRecorder{}
			tt.run(c)
			if c.closes != 1 {
				t.Errorf("closes = %d, want 1", c.closes)
			}
		})
	}
}

func TestCloseFunc_IsLazy(t *testing.T) {
	c := &closeRecorder{}
	fn := CloseFunc(c)
	if c.closes != 0 {
		t.Fatal("CloseFunc closed before the returned func ran")
	}
	fn()
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}
