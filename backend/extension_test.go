package backend

import (
	"errors"
	"testing"
)

func TestExtModeString(t *testing.T) {
	tests := []struct {
		mode ExtMode
		want string
	}{
		{ExtModeDisabled, "disabled"},
		{ExtModeOptional, "optional"},
		{ExtModeRequired, "required"},
		{ExtModePassive, "passive"},
		{ExtMode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ExtMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestExtEnableDisable(t *testing.T) {
	e := NewExt("VK_KHR_swapchain", ExtModeRequired)
	if e.Enabled() {
		t.Error("new extension reports enabled")
	}
	e.Enable(70)
	if !e.Enabled() {
		t.Error("Enabled() = false after Enable")
	}
	if e.Revision() != 70 {
		t.Errorf("Revision() = %d, want 70", e.Revision())
	}
	e.Disable()
	if e.Enabled() {
		t.Error("Enabled() = true after Disable")
	}
}

func TestNameSetAddAndSupports(t *testing.T) {
	s := NameSet{}
	s.Add("a")
	s.AddRevision("b", 3)
	s.AddRevision("b", 2) // no downgrade

	if got := s.Supports("a"); got != 1 {
		t.Errorf("Supports(a) = %d, want 1", got)
	}
	if got := s.Supports("b"); got != 3 {
		t.Errorf("Supports(b) = %d, want 3", got)
	}
	if got := s.Supports("missing"); got != 0 {
		t.Errorf("Supports(missing) = %d, want 0", got)
	}
}

func TestNameSetMerge(t *testing.T) {
	s := NameSet{"a": 1}
	s.Merge(NameSet{"a": 5, "b": 2})
	if s.Supports("a") != 5 || s.Supports("b") != 2 {
		t.Errorf("Merge result = %v", s)
	}
}

func TestNameSetNamesSorted(t *testing.T) {
	s := NameSet{"c": 1, "a": 1, "b": 1}
	got := s.Names()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestNegotiateRequiredMissing(t *testing.T) {
	supported := NameSet{"VK_KHR_surface": 25}
	required := NewExt("VK_KHR_swapchain", ExtModeRequired)

	_, err := Negotiate(supported, []*Ext{required})
	if !errors.Is(err, ErrExtensionNotSupported) {
		t.Fatalf("Negotiate() error = %v, want ErrExtensionNotSupported", err)
	}
	if required.Enabled() {
		t.Error("required extension enabled despite failed negotiation")
	}
}

func TestNegotiateRequiredPresent(t *testing.T) {
	supported := NameSet{"VK_KHR_swapchain": 70}
	required := NewExt("VK_KHR_swapchain", ExtModeRequired)

	enabled, err := Negotiate(supported, []*Ext{required})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if !required.Enabled() || required.Revision() != 70 {
		t.Errorf("required = enabled %v rev %d, want enabled rev 70",
			required.Enabled(), required.Revision())
	}
	if enabled.Supports("VK_KHR_swapchain") != 70 {
		t.Errorf("enabled set = %v, missing swapchain", enabled)
	}
}

func TestNegotiateOptionalMissing(t *testing.T) {
	optional := NewExt("VK_EXT_memory_priority", ExtModeOptional)

	enabled, err := Negotiate(NameSet{}, []*Ext{optional})
	if err != nil {
		t.Fatalf("Negotiate() error = %v, want silent skip for optional", err)
	}
	if optional.Enabled() {
		t.Error("unsupported optional extension reports enabled")
	}
	if len(enabled) != 0 {
		t.Errorf("enabled set = %v, want empty", enabled)
	}
}

func TestNegotiateDisabledNeverRequested(t *testing.T) {
	supported := NameSet{"VK_NVX_binary_import": 1}
	disabled := NewExt("VK_NVX_binary_import", ExtModeDisabled)

	enabled, err := Negotiate(supported, []*Ext{disabled})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if disabled.Enabled() {
		t.Error("disabled extension reports enabled")
	}
	if enabled.Supports("VK_NVX_binary_import") != 0 {
		t.Error("disabled extension present in request set")
	}
}

func TestNegotiatePassiveNotRequested(t *testing.T) {
	supported := NameSet{"VK_EXT_memory_budget": 1}
	passive := NewExt("VK_EXT_memory_budget", ExtModePassive)

	enabled, err := Negotiate(supported, []*Ext{passive})
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	// Passive entries are enabled when the implementation provides
	// them but never added to the request set.
	if !passive.Enabled() {
		t.Error("supported passive extension not enabled")
	}
	if enabled.Supports("VK_EXT_memory_budget") != 0 {
		t.Error("passive extension present in request set")
	}
}

func TestNegotiatePassiveUnsupported(t *testing.T) {
	passive := NewExt("VK_EXT_memory_budget", ExtModePassive)

	if _, err := Negotiate(NameSet{}, []*Ext{passive}); err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if passive.Enabled() {
		t.Error("unsupported passive extension reports enabled")
	}
}
