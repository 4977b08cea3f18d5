package checkcmd

import "testing"

func TestCheckDirectoryCommandValidate(t *testing.T) {
	cmd := CheckDirectoryCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}

	cmd.Directory = "content"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}

	cmd.FailOn = "sometimes"
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for unknown fail_on")
	}

	cmd.FailOn = "never"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error for fail_on never: %v", err)
	}
}

func TestIndexDirectoryCommandValidateRejectsEscapes(t *testing.T) {
	cmd := IndexDirectoryCommand{Directory: "../elsewhere"}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for a directory outside the root")
	}

	cmd.Directory = "1/4"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
