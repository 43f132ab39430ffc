package generatecmd

import "testing"

func TestBuildSiteCommandType(t *testing.T) {
	if got := (BuildSiteCommand{}).Type(); got != "compage.generate.build_site" {
		t.Fatalf("unexpected message type %q", got)
	}
	if got := (CleanSiteCommand{}).Type(); got != "compage.generate.clean_site" {
		t.Fatalf("unexpected message type %q", got)
	}
}

func TestBuildSiteCommandValidate(t *testing.T) {
	if err := (BuildSiteCommand{}).Validate(); err != nil {
		t.Fatalf("expected an empty command to validate, got %v", err)
	}
	if err := (BuildSiteCommand{Paths: []string{"blog/first-post.md"}}).Validate(); err != nil {
		t.Fatalf("expected valid paths to pass, got %v", err)
	}
	if err := (BuildSiteCommand{Paths: []string{"blog/first-post.md", "  "}}).Validate(); err == nil {
		t.Fatal("expected blank path entries to fail validation")
	}
}

func TestCleanSiteCommandValidate(t *testing.T) {
	if err := (CleanSiteCommand{}).Validate(); err != nil {
		t.Fatalf("expected clean command to validate, got %v", err)
	}
}
