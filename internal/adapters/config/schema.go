package config

// Recipe represents the structure of the kiln.yaml recipe file.
type Recipe struct {
	Version      string            `yaml:"version"`
	Image        ImageDTO          `yaml:"image"`
	Base         BaseDTO           `yaml:"base"`
	System       SystemDTO         `yaml:"system"`
	Dependencies DependenciesDTO   `yaml:"dependencies"`
	Source       SourceDTO         `yaml:"source"`
	Env          map[string]string `yaml:"env"`
}

// ImageDTO names the final image the pipeline result is tagged with.
type ImageDTO struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

// BaseDTO pins the base image the pipeline starts from.
type BaseDTO struct {
	Ref string `yaml:"ref"`
}

// SystemDTO lists the OS packages to provision.
type SystemDTO struct {
	Packages []string `yaml:"packages"`
}

// DependenciesDTO names the language dependency manifest.
type DependenciesDTO struct {
	Manifest string `yaml:"manifest"`
}

// SourceDTO describes the source tree and where it is layered.
type SourceDTO struct {
	Path    string `yaml:"path"`
	Repo    string `yaml:"repo"`
	Workdir string `yaml:"workdir"`
}
