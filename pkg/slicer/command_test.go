package slicer

import (
	"reflect"
	"testing"
)

func TestBuildArgs_BaseShape(t *testing.T) {
	args := buildArgs("/p/printer.json", "/p/process.json", "/p/filament.json", "/w/output", "/w/model.stl", Request{})

	want := []string{
		"--slice", "0",
		"--load-settings", "/p/printer.json;/p/process.json",
		"--load-filaments", "/p/filament.json",
		"--allow-newer-file",
		"--arrange", "1",
		"--ensure-on-bed",
		"--outputdir", "/w/output",
		"/w/model.stl",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch:\n got=%v\nwant=%v", args, want)
	}
}

func TestBuildArgs_OrientAndBedType(t *testing.T) {
	args := buildArgs("p", "q", "f", "o", "m", Request{Orient: true, BedType: "Textured PEI Plate"})

	want := []string{
		"--slice", "0",
		"--load-settings", "p;q",
		"--load-filaments", "f",
		"--allow-newer-file",
		"--arrange", "1",
		"--ensure-on-bed",
		"--orient", "1",
		"--curr-bed-type", "Textured PEI Plate",
		"--outputdir", "o",
		"m",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args mismatch:\n got=%v\nwant=%v", args, want)
	}
}

func TestBuildArgs_UnknownBedTypeSilentlyOmitted(t *testing.T) {
	args := buildArgs("p", "q", "f", "o", "m", Request{BedType: "Lava Plate"})
	for _, a := range args {
		if a == "--curr-bed-type" || a == "Lava Plate" {
			t.Fatalf("unknown bed type must be dropped: %v", args)
		}
	}
}

func TestBedTypes_AcceptedSet(t *testing.T) {
	for _, name := range []string{"Cool Plate", "Engineering Plate", "High Temp Plate", "Textured PEI Plate"} {
		if !BedTypes[name] {
			t.Fatalf("expected %q to be accepted", name)
		}
	}
	if BedTypes["cool plate"] {
		t.Fatalf("bed type matching must be exact")
	}
}
