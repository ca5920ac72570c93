package buildinfo_test

import (
	"fmt"
	"os"

	"github.com/InQaaaaGit/graph_batch.git/internal/buildinfo"
)

// ExampleDefaultInfo демонстрирует информацию о сборке без -ldflags
func ExampleDefaultInfo() {
	info := buildinfo.DefaultInfo()
	fmt.Println(info)

	// Output:
	// Version: N/A, Date: N/A, Commit: N/A
}

// ExampleInfo_Fprint демонстрирует вывод при запуске бинарника
func ExampleInfo_Fprint() {
	info := buildinfo.NewInfo("v1.2.0", "2026-10-01", "")
	_ = info.Fprint(os.Stdout)

	// Output:
	// Build version: v1.2.0
	// Build date: 2026-10-01
	// Build commit: N/A
}
