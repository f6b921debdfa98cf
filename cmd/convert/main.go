package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ddvk/rmshapes/annotations"
	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/pages"
	"github.com/ddvk/rmshapes/shape"
	"github.com/ddvk/rmshapes/visualize"
)

func main() {
	inputName := flag.String("i", "", "file to convert, a .rm page or a notebook")
	outputName := flag.String("o", "", "outpufilename")
	extract := flag.String("e", "", "extract, p - pdf, i - png of the first page, r - beautified page, j - json report")
	flag.Parse()
	log.InitLog()

	err := run(*inputName, *outputName, *extract)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputName, outputName, extract string) error {
	if inputName == "" {
		return errors.New("missing input file")
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	scan, err := cfg.Pages()
	if err != nil {
		return err
	}

	zip, err := archive.Open(inputName)
	if err != nil {
		return err
	}

	result, err := pages.ProcessArchive(context.Background(), zip, scan)
	if err != nil {
		return err
	}

	switch extract {
	case "":
		fallthrough
	case "p":
		return convert(zip, result, outputFor(inputName, outputName, ".pdf"))
	case "i":
		return png(zip, result, outputFor(inputName, outputName, ".png"))
	case "r":
		return beautify(zip, result, outputFor(inputName, outputName, ".shapes"+filepath.Ext(inputName)))
	case "j":
		return report(result, outputFor(inputName, outputName, ".json"))
	}
	return fmt.Errorf("unknown extract mode %q", extract)
}

func outputFor(inputName, outputName, ext string) string {
	if outputName != "" {
		return outputName
	}
	nameOnly := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	return nameOnly + ext
}

func shapesOf(result [][]pages.Report) [][]shape.Shape {
	shapes := make([][]shape.Shape, len(result))
	for i, reports := range result {
		shapes[i] = pages.Shapes(reports)
	}
	return shapes
}

func convert(zip *archive.Zip, result [][]pages.Report, outputName string) error {
	options := annotations.PdfGeneratorOptions{
		AddPageNumbers: true,
	}
	gen := annotations.CreatePdfGenerator(zip, shapesOf(result), options)
	return gen.Generate(outputName)
}

func png(zip *archive.Zip, result [][]pages.Report, outputName string) error {
	img := visualize.Render(zip.Pages[0].Data, pages.Shapes(result[0]), visualize.DefaultOptions())
	return visualize.SavePNG(outputName, img)
}

func beautify(zip *archive.Zip, result [][]pages.Report, outputName string) error {
	for i := range zip.Pages {
		zip.Pages[i].Data = pages.Apply(zip.Pages[i].Data, result[i])
	}
	return zip.Save(outputName)
}

func report(result [][]pages.Report, outputName string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputName, data, 0644)
}
