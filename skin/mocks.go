package skin

import (
	"context"

	"github.com/roundcube/skin-installer/skin/entities"
)

// MockBaseInstaller implements ports.BaseInstaller
type MockBaseInstaller struct {
	InstallErr   error
	UpdateErr    error
	UninstallErr error

	Paths []string
	Calls *[]string
}

func (m *MockBaseInstaller) record(call string) {
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, call)
	}
}

func (m *MockBaseInstaller) Install(ctx context.Context, pkg *entities.Package, installPath string) error {
	m.record("install")
	m.Paths = append(m.Paths, installPath)
	return m.InstallErr
}

func (m *MockBaseInstaller) Update(ctx context.Context, initial, target *entities.Package, initialPath, targetPath string) error {
	m.record("update")
	m.Paths = append(m.Paths, initialPath, targetPath)
	return m.UpdateErr
}

func (m *MockBaseInstaller) Uninstall(ctx context.Context, pkg *entities.Package, installPath string) error {
	m.record("uninstall")
	m.Paths = append(m.Paths, installPath)
	return m.UninstallErr
}

// MockVersionGate implements ports.VersionGate
type MockVersionGate struct {
	Err     error
	Checked []*entities.Package
	Calls   *[]string
}

func (m *MockVersionGate) Check(pkg *entities.Package) error {
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, "check")
	}
	m.Checked = append(m.Checked, pkg)
	return m.Err
}

// MockConfigActivator implements ports.ConfigActivator
type MockConfigActivator struct {
	IsWritable bool
	Changed    bool
	Err        error
	Activated  []string
	Calls      *[]string
}

func (m *MockConfigActivator) Writable() bool {
	return m.IsWritable
}

func (m *MockConfigActivator) Activate(name string) (bool, error) {
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, "activate")
	}
	m.Activated = append(m.Activated, name)
	return m.Changed, m.Err
}

// MockHookRunner implements ports.HookRunner
type MockHookRunner struct {
	Err     error
	Scripts []string
	Calls   *[]string
}

func (m *MockHookRunner) Run(ctx context.Context, script string, pkg *entities.Package) error {
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, "script")
	}
	m.Scripts = append(m.Scripts, script)
	return m.Err
}

// MockPrompter implements ports.Prompter
type MockPrompter struct {
	Interactive bool
	Answer      bool
	Err         error
	Questions   []string
}

func (m *MockPrompter) IsInteractive() bool {
	return m.Interactive
}

func (m *MockPrompter) Confirm(question string, def bool) (bool, error) {
	m.Questions = append(m.Questions, question)
	return m.Answer, m.Err
}
