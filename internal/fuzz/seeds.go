package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 16 << 10
)

var languageSeeds = []string{
	"1+2",
	"let x=-1",
	"a ? b : c",
	"x ?? y",
	"if let a = b,\nlet c = d {\n}",
	"guard x>0 else{return}",
	"switch x {\ncase 1:\nfoo()\ndefault:\nbreak\n}",
	"foo(\na,\nb\n)",
	"let y = list\n.map { x in\nx + 1\n}",
	"// header\nlet x = 1 // trailing +",
	"/* a /* nested */ b */",
	"#if DEBUG\nlet a=1\n#else\nlet a=2\n#endif",
	`let s = "a \(foo("b)")) c"`,
	"let m = \"\"\"\n  line\n  \"\"\"",
	`let r = #"raw "quoted""#`,
	"let a:Array<Int>=[]",
	"x = 1e-5*y",
	"let r = 0..<10",
	"}}]",
	"\"open",
	"let s = \"\\(",
	"\r\n\r\n",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, seed := range languageSeeds {
		f.Add([]byte(seed))
	}
}

// testdataSources returns the Swift sources under the repository testdata tree.
func testdataSources() (map[string][]byte, error) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return nil, nil
	}
	out := make(map[string][]byte)
	// проходим по дереву testdata, добавляем все *.swift файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".swift" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(src) > maxSeedBytes {
			src = src[:maxSeedBytes]
		}
		out[path] = src
		return nil
	})
	return out, err
}

func addTestdataSeeds(f *testing.F) {
	sources, err := testdataSources()
	if err != nil {
		f.Fatalf("testdata: %v", err)
	}
	for _, src := range sources {
		f.Add(src)
	}
}
