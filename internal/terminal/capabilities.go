package terminal

// Options are the command-line overrides for detection.
type Options struct {
	Color               ColorMode
	ForceInteractive    bool
	ForceNonInteractive bool
}

// Capabilities is the detection result for one output stream.
type Capabilities struct {
	Interactive bool
	Color       bool
}

// Detect evaluates fd against the real environment.
func Detect(opts Options, fd uintptr) Capabilities {
	return DetectWithEnv(OSEnv(), opts, fd)
}

// DetectWithEnv evaluates fd against env.
func DetectWithEnv(env Env, opts Options, fd uintptr) Capabilities {
	return Capabilities{
		Interactive: IsInteractive(env, opts, fd),
		Color:       ColorEnabled(env, opts, fd),
	}
}
