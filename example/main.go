// FILE: nativeconfig/example/main.go
package main

import (
	"fmt"
	"log"
	"time"

	"nativeconfig"
)

var (
	optFont = nativeconfig.Must(nativeconfig.NewStringOption("Font",
		nativeconfig.Default("Menlo"),
		nativeconfig.Env("EDITOR_FONT"),
		nativeconfig.Doc("Editor font family"),
	))
	optFontSize = nativeconfig.Must(nativeconfig.NewIntOption("FontSize",
		nativeconfig.Default(12),
		nativeconfig.Choices(10, 12, 14, 16),
	))
	optAutosave = nativeconfig.Must(nativeconfig.NewDurationOption("AutosaveInterval",
		nativeconfig.Default(30*time.Second),
	))
	optRecent = nativeconfig.Must(nativeconfig.NewArrayOption("RecentFiles",
		nativeconfig.Must(nativeconfig.NewPathOption("RecentFile")),
	))
)

type editorSettings struct {
	Font     string        `config:"Font"`
	FontSize int64         `config:"FontSize"`
	Autosave time.Duration `config:"AutosaveInterval"`
}

func main() {
	reg, err := nativeconfig.NewRegistry([]nativeconfig.Field{
		{Attr: "Font", Option: optFont},
		{Attr: "FontSize", Option: optFontSize},
		{Attr: "AutosaveInterval", Option: optAutosave},
		{Attr: "RecentFiles", Option: optRecent},
	})
	if err != nil {
		log.Fatal(err)
	}

	path, err := nativeconfig.DiscoverPath("editor-demo", "settings.json")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := nativeconfig.New(reg, nativeconfig.NewFileBackend(path),
		nativeconfig.WithAllowCache(true),
	)
	if err != nil {
		log.Fatal(err)
	}

	font, src, err := optFont.Read(cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("font: %s (from %s)\n", font, src)

	if err := optFontSize.Set(cfg, 14); err != nil {
		log.Fatal(err)
	}
	if err := optRecent.Set(cfg, []any{"/tmp/a.txt", "/tmp/b.txt"}); err != nil {
		log.Fatal(err)
	}

	var settings editorSettings
	if err := cfg.Scan(&settings); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("settings: %+v\n", settings)

	snapshot, err := cfg.Snapshot()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("snapshot: %s\n", snapshot)
}
