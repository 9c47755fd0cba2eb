package cli

import (
	"bytes"
	"testing"
)

func TestTable_Rows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "IFID", "MAC")
	tbl.Row("7", "00:24:b2:0e:fe:0f")
	tbl.Row("42", "00:00:0c:9f:f0:02")
	if err := tbl.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "" +
		"IFID  MAC\n" +
		"----  ---\n" +
		"7     00:24:b2:0e:fe:0f\n" +
		"42    00:00:0c:9f:f0:02\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTable_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "IFID", "MAC")
	if err := tbl.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty table printed %q", buf.String())
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}
