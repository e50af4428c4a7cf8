package link

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestExpandVLANs(t *testing.T) {
	tests := []struct {
		spec string
		want []int
	}{
		{"", nil},
		{"10", []int{10}},
		{"1-3,5", []int{1, 2, 3, 5}},
		{"30, 10,20", []int{10, 20, 30}},
		{"5-7,6", []int{5, 6, 7}},
		{"100-100", []int{100}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ExpandVLANs(tt.spec)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandVLANsRejectsBadInput(t *testing.T) {
	for _, spec := range []string{"a", "5-3", "0", "4095", "1-x"} {
		_, err := ExpandVLANs(spec)
		assert.Error(t, err, spec)
	}
}

func TestFormatVLANs(t *testing.T) {
	assert.Equal(t, "10,20,30", FormatVLANs([]int{30, 10, 20, 10}))
	assert.Equal(t, "", FormatVLANs(nil))
}

func TestEqualComparesVLANSets(t *testing.T) {
	a := LinkConfig{Name: "swp1", Mode: ModeTrunk, PVID: 10, TrunkAllowedVLANs: []int{10, 20, 30}}
	b := LinkConfig{Name: "swp1", Mode: ModeTrunk, PVID: 10, TrunkAllowedVLANs: []int{30, 20, 10, 20}}
	assert.True(t, a.Equal(b))

	b.TrunkAllowedVLANs = []int{10, 20}
	assert.False(t, a.Equal(b))

	assert.False(t, Access("swp1", 10).Equal(Access("swp1", 11)))
	assert.False(t, Access("swp1", 10).Equal(Access("swp2", 10)))
	assert.True(t, Access("swp1", 10).Equal(LinkConfig{Name: "swp1", Mode: ModeAccess, PVID: 10}))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "mode=trunk, pvid=10, allowed vlans=[10, 20]", Trunk("swp1", 10, []int{20, 10}).Describe())
	assert.Equal(t, "mode=None, pvid=None, allowed vlans=[]", LinkConfig{Name: "swp1"}.Describe())
}

func testDesired() DesiredStates {
	return DesiredStates{
		{Name: Prod, Config: Trunk("swp1", 10, []int{10, 20, 30})},
		{Name: Setup, Config: Access("swp1", 100)},
	}
}

func TestReconcile(t *testing.T) {
	desired := testDesired()

	tests := []struct {
		name   string
		actual LinkConfig
		want   State
	}{
		{"prod", Trunk("swp1", 10, []int{30, 10, 20}), State{Name: Prod}},
		{"setup", Access("swp1", 100), State{Name: Setup}},
		{"l3 ignores the map", LinkConfig{Name: "swp1", L2Disabled: true}, State{Name: L3}},
		{
			"unknown",
			Trunk("swp1", 10, []int{10, 20}),
			State{Name: Unknown, Detail: "mode=trunk, pvid=10, allowed vlans=[10, 20]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(desired, tt.actual))
		})
	}
}

func TestReconcileFirstMatchWins(t *testing.T) {
	same := Access("swp1", 100)
	desired := DesiredStates{{Name: Prod, Config: same}, {Name: Setup, Config: same}}
	for i := 0; i < 10; i++ {
		assert.Equal(t, Prod, Reconcile(desired, same).Name)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "prod", State{Name: Prod}.String())
	assert.Equal(t, "unknown: mode=access, pvid=5, allowed vlans=[]",
		Reconcile(testDesired(), Access("swp1", 5)).String())
}

func TestLookup(t *testing.T) {
	c, ok := testDesired().Lookup(Setup)
	assert.True(t, ok)
	assert.Equal(t, 100, c.PVID)
	_, ok = testDesired().Lookup(L3)
	assert.False(t, ok)
	assert.False(t, L3.Settable())
	assert.True(t, Prod.Settable())
}
