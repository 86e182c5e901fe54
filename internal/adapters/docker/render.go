package docker

import (
	"fmt"
	"path"
	"strings"

	"github.com/larsclaussen/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// manifestDir is where the dependency manifest lands inside the image.
// Keeping it fixed means the manifest's in-image location never leaks
// recipe-local path structure into the layer.
const manifestDir = "/opt/kiln"

// renderStage renders a stage as a single-parent Dockerfile. Each stage
// builds FROM the parent snapshot alone, so the resulting layer captures
// exactly one environment mutation.
func renderStage(parentRef string, stage *domain.Stage) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", parentRef)

	switch stage.Kind {
	case domain.KindSystemPackages:
		renderSystemPackages(&b, stage)
	case domain.KindDependencies:
		renderDependencies(&b, stage)
	case domain.KindSource:
		renderSource(&b, stage)
	case domain.KindRuntimeConfig:
		renderRuntimeConfig(&b, stage)
	default:
		return "", zerr.With(domain.ErrUnknownStageKind, "kind", string(stage.Kind))
	}

	return b.String(), nil
}

// renderSystemPackages emits one RUN unit covering index refresh, install,
// and cache cleanup. Splitting these would persist the transient package
// index into an addressable layer.
func renderSystemPackages(b *strings.Builder, stage *domain.Stage) {
	install := "apt-get install -y --no-install-recommends"
	if stage.NonInteractive {
		install = "DEBIAN_FRONTEND=noninteractive " + install
	}
	fmt.Fprintf(b, "RUN apt-get update && %s %s && rm -rf /var/lib/apt/lists/*\n",
		install, strings.Join(stage.Packages.Names(), " "))
}

// renderDependencies copies the manifest alone into the image and installs
// from it with the installer cache disabled. Source files are deliberately
// absent from this layer.
func renderDependencies(b *strings.Builder, stage *domain.Stage) {
	name := path.Base(stage.ManifestPath.String())
	target := path.Join(manifestDir, name)
	fmt.Fprintf(b, "COPY %s %s\n", name, target)
	fmt.Fprintf(b, "RUN pip install --no-cache-dir -r %s\n", target)
}

func renderSource(b *strings.Builder, stage *domain.Stage) {
	workdir := stage.WorkDir.String()
	fmt.Fprintf(b, "COPY . %s\n", workdir)
	fmt.Fprintf(b, "WORKDIR %s\n", workdir)
}

// renderRuntimeConfig emits one ENV per assignment in sorted key order so
// the rendered file is deterministic regardless of recipe order.
func renderRuntimeConfig(b *strings.Builder, stage *domain.Stage) {
	for _, assignment := range stage.Env.Sorted() {
		key, value, _ := strings.Cut(assignment, "=")
		fmt.Fprintf(b, "ENV %s=%q\n", key, value)
	}
}
