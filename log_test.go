package wimax

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func withTestLogger(t *testing.T) (*logrus.Logger, *test.Hook) {
	t.Helper()
	l, hook := test.NewNullLogger()
	prev := GetLogger()
	SetLogger(&defaultLogger{Entry: l.WithFields(logrus.Fields{})})
	t.Cleanup(func() { SetLogger(prev) })
	return l, hook
}

func TestSetLogLevel(t *testing.T) {
	l, _ := withTestLogger(t)

	if err := SetLogLevel("warn"); err != nil {
		t.Fatal(err)
	}
	if l.Level != logrus.WarnLevel {
		t.Fatalf("level %v", l.Level)
	}
	if err := SetLogLevel("chatty"); err == nil {
		t.Fatal("bad level accepted")
	}

	SetLogLevelMax()
	if l.Level != logrus.TraceLevel {
		t.Fatalf("level %v after SetLogLevelMax", l.Level)
	}
}

func TestChildLogger(t *testing.T) {
	l, hook := withTestLogger(t)
	l.SetLevel(logrus.DebugLevel)

	GetLogger().ChildLogger(map[string]interface{}{"dev": "wm0"}).Debugf("rx %d", 3)

	e := hook.LastEntry()
	if e == nil || e.Message != "rx 3" || e.Data["dev"] != "wm0" {
		t.Fatalf("entry %+v", e)
	}
}
