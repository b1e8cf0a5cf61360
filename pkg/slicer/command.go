package slicer

// BedTypes is the fixed set of build plate names the engine accepts for
// --curr-bed-type. The strings are exact; anything else is dropped.
var BedTypes = map[string]bool{
	"Cool Plate":         true,
	"Engineering Plate":  true,
	"High Temp Plate":    true,
	"Textured PEI Plate": true,
}

// buildArgs assembles the engine's argument vector. Argument order matters
// for some builds of the engine, so the shape is kept stable:
//
//	--slice 0
//	--load-settings "<printer>;<process>"
//	--load-filaments "<filament>"
//	--allow-newer-file
//	--arrange 1
//	--ensure-on-bed
//	[--orient 1]
//	[--curr-bed-type "<plate>"]
//	--outputdir "<output>"
//	"<model>"
func buildArgs(printerPath, processPath, filamentPath, outputDir, modelPath string, req Request) []string {
	args := []string{
		"--slice", "0",
		"--load-settings", printerPath + ";" + processPath,
		"--load-filaments", filamentPath,
		"--allow-newer-file",
		"--arrange", "1",
		"--ensure-on-bed",
	}
	if req.Orient {
		args = append(args, "--orient", "1")
	}
	if BedTypes[req.BedType] {
		args = append(args, "--curr-bed-type", req.BedType)
	}
	args = append(args, "--outputdir", outputDir, modelPath)
	return args
}
