package manifest

// Layout used by the generated wheel pipeline inside the build containers.
const (
	wheelRoot = "/opt/wheelwright"

	// Directory inside the builder stage holding the built wheel. Callers
	// collect this path to pull the wheel out to the host output directory.
	WheelDistPath = wheelRoot + "/dist"

	// Name of the transient stage that builds the wheel.
	WheelBuilderStage = "builder"
)

// Parameters for the built-in Python wheel pipeline.
type WheelOptions struct {
	Distribution string // Distribution name of the packaged project.
	Script       string // Console script to expose as the entrypoint. Defaults to Distribution.
	Version      string // Version recorded on the exported image. Defaults to the VERSION arg default.
	BaseImage    string // Base image for both stages. Defaults to the BASE_IMAGE arg default.
	Arch         string // Target architecture. Defaults to the ARCH arg default.
}

// Produces the built-in two-stage Python wheel recipe.
//
// The builder stage copies the build context into the image, creates a
// virtual environment, and builds a wheel with the PyPA build frontend.
// The runtime stage installs the wheel from the builder and sets the
// package's console script as the entrypoint. The builder is transient,
// so only the runtime image is exported.
func Wheel(opts WheelOptions) *Recipe {
	script := opts.Script
	if script == "" {
		script = opts.Distribution
	}

	args := map[string]string{}
	if opts.Arch != "" {
		args[ArgArch] = opts.Arch
	}
	if opts.Version != "" {
		args[ArgVersion] = opts.Version
	}
	if opts.BaseImage != "" {
		args[ArgBaseImage] = opts.BaseImage
	}

	src := wheelRoot + "/src"
	venv := wheelRoot + "/venv"

	return &Recipe{
		Args: args,
		Stages: []Stage{
			{
				Name:      WheelBuilderStage,
				From:      "${BASE_IMAGE}",
				Transient: true,
				Steps: []Step{
					{Workdir: wheelRoot},
					{Copy: ". " + src},
					{Run: "python -m venv " + venv},
					{Env: map[string]string{"PATH": venv + "/bin:$PATH"}},
					{Run: "pip install --no-cache-dir --upgrade pip build"},
					{Run: "python -m build --wheel --outdir " + WheelDistPath + " " + src},
				},
			},
			{
				Name: "runtime",
				From: "${BASE_IMAGE}",
				Steps: []Step{
					{Copy: WheelBuilderStage + ":" + WheelDistPath + " " + WheelDistPath},
					{Run: "pip install --no-cache-dir " + WheelDistPath + "/*.whl"},
					{Run: "rm -rf " + WheelDistPath},
				},
			},
		},
		Entrypoint: []string{script},
		Labels: map[string]string{
			"org.opencontainers.image.title":   opts.Distribution,
			"org.opencontainers.image.version": "${VERSION}",
		},
	}
}
