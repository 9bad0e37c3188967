package playbook

import "testing"

func TestValueUnsetIsDistinctFromNullString(t *testing.T) {
	if Unset.IsSet() {
		t.Fatal("Unset reports set")
	}
	var zero Value
	if zero.IsSet() {
		t.Error("zero Value should be unset")
	}
	null := Of("null")
	if !null.IsSet() {
		t.Error(`Of("null") should be set`)
	}
	if null.Raw() != "null" {
		t.Errorf("raw = %v", null.Raw())
	}
	if Of(nil).String() != "null" || Unset.String() != "<unset>" {
		t.Errorf("String() = %q / %q", Of(nil).String(), Unset.String())
	}
}

func TestArgsSetPreservesOrder(t *testing.T) {
	var a Args
	a.Set("b", 1)
	a.Set("a", 2)
	a.Set("b", 3)
	if len(a) != 2 || a[0].Name != "b" || a[0].Value != 3 || a[1].Name != "a" {
		t.Errorf("args = %#v", a)
	}
	if _, ok := a.Get("missing"); ok {
		t.Error("Get(missing) reported found")
	}
	if m := a.Map(); m["a"] != 2 {
		t.Errorf("Map() = %v", m)
	}
}
