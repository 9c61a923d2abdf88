package service

import (
	"errors"
	"reflect"
	"testing"

	"github.com/takama/daemon"

	constants "pimonitor/config"
)

type fakeDaemon struct {
	daemon.Daemon

	installed []string
	calls     []string
	stopErr   error
}

func (f *fakeDaemon) Install(args ...string) (string, error) {
	f.installed = args
	f.calls = append(f.calls, "install")
	return "Install " + constants.APP_NAME + ":\t\t\t\t\t[  OK  ]", nil
}

func (f *fakeDaemon) Remove() (string, error) {
	f.calls = append(f.calls, "remove")
	return "removed", nil
}

func (f *fakeDaemon) Start() (string, error) {
	f.calls = append(f.calls, "start")
	return "started", nil
}

func (f *fakeDaemon) Stop() (string, error) {
	f.calls = append(f.calls, "stop")
	return "stopped", f.stopErr
}

func (f *fakeDaemon) Status() (string, error) {
	return "running", nil
}

func useFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()
	fake := &fakeDaemon{}
	orig := newDaemon
	newDaemon = func(name, description string, kind daemon.Kind, dependencies ...string) (daemon.Daemon, error) {
		if name != constants.APP_NAME {
			t.Errorf("Expected daemon name %q, got %q", constants.APP_NAME, name)
		}
		return fake, nil
	}
	t.Cleanup(func() { newDaemon = orig })
	return fake
}

func TestInstall_RunsServe(t *testing.T) {
	fake := useFakeDaemon(t)
	svc, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := svc.Install("-p", "8080", "-4"); err != nil {
		t.Fatalf("Install: %v", err)
	}
	want := []string{ServeCommand, "-p", "8080", "-4"}
	if !reflect.DeepEqual(fake.installed, want) {
		t.Errorf("Installed args = %v, want %v", fake.installed, want)
	}
}

func TestRestart_StartsEvenWhenStopFails(t *testing.T) {
	fake := useFakeDaemon(t)
	fake.stopErr = errors.New("not running")
	svc, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status, err := svc.Restart()
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if status != "started" {
		t.Errorf("Expected started, got %q", status)
	}
	if !reflect.DeepEqual(fake.calls, []string{"stop", "start"}) {
		t.Errorf("Unexpected call order %v", fake.calls)
	}
}

func TestNew_PropagatesError(t *testing.T) {
	orig := newDaemon
	newDaemon = func(string, string, daemon.Kind, ...string) (daemon.Daemon, error) {
		return nil, errors.New("unsupported system")
	}
	t.Cleanup(func() { newDaemon = orig })

	if _, err := New(); err == nil {
		t.Fatal("Expected error from daemon constructor")
	}
}
