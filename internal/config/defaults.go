package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile, a project file in the
// working directory, or LUXXIT_ environment variables.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Sources SourcesConfig `json:"sources"`
	Tools   ToolsConfig   `json:"tools"`
	Build   BuildConfig   `json:"build"`
	Server  ServerConfig  `json:"server"`
}

// PathsConfig names the working tree. Relative paths are resolved against the workspace root.
type PathsConfig struct {
	WorkDir       string `json:"work_dir"`       // Default: .luxxit
	JavaDir       string `json:"java_dir"`       // Default: .java
	GameDir       string `json:"game_dir"`       // Default: .lux
	MavenDir      string `json:"maven_dir"`      // Default: .maven
	FernflowerDir string `json:"fernflower_dir"` // Default: .fernflower
	ProjectDir    string `json:"project_dir"`    // Default: Luxxit
	InfoFile      string `json:"info_file"`      // Default: .info
}

// SourcesConfig lists the artifacts fetched over HTTP.
type SourcesConfig struct {
	JDKWindows  Source   `json:"jdk_windows"`
	JDKLinux    Source   `json:"jdk_linux"`
	Game        Source   `json:"game"`
	Maven       Source   `json:"maven"`
	Fernflower  Source   `json:"fernflower"`
	Exe4jLib    Source   `json:"exe4j_lib"`
	UpdateFiles []Source `json:"update_files"`
}

// Source is a downloadable artifact. Digest is optional ("sha256:<hex>").
type Source struct {
	URL    string `json:"url"`
	Digest string `json:"digest,omitempty"`
	// Name overrides the local file name derived from the URL.
	Name string `json:"name,omitempty"`
}

type ToolsConfig struct {
	// Command Execution
	MaxCommandOutputSize int64 `json:"max_command_output_size"` // Default: 10 * 1024 * 1024 (10MB)
	GracefulShutdownMs   int   `json:"graceful_shutdown_ms"`    // Default: 2000
	DecompileTimeout     int   `json:"decompile_timeout"`       // Default: 1800 (seconds)
	BuildTimeout         int   `json:"build_timeout"`           // Default: 1800 (seconds)
	PatchTimeout         int   `json:"patch_timeout"`           // Default: 120 (seconds)

	// Downloads
	DownloadTimeout    int `json:"download_timeout"`     // Default: 1800 (seconds)
	ParallelDownloads  int `json:"parallel_downloads"`   // Default: 3
	ProgressIntervalMs int `json:"progress_interval_ms"` // Default: 500
}

type BuildConfig struct {
	GameJar       string   `json:"game_jar"`        // Default: LuxCore.jar
	GameJarDir    string   `json:"game_jar_dir"`    // Default: LuxDelux
	MavenHome     string   `json:"maven_home"`      // Default: "" (detected under the maven dir)
	ArtifactName  string   `json:"artifact_name"`   // Default: LuxCore-1.0.jar
	OutputJar     string   `json:"output_jar"`      // Default: Luxxit.jar
	MavenArgs     []string `json:"maven_args"`      // Default: ["-X"]
	PatchFile     string   `json:"patch_file"`      // Default: luxxit.patch
	RenamesFile   string   `json:"renames_file"`    // Default: renames.txt
	ResourceExts  []string `json:"resource_exts"`   // Root files moved into src/main/resources
	SupportDir    string   `json:"support_dir"`     // Default: Support
	JavaOutputDir string   `json:"java_output_dir"` // Default: java
}

// ServerConfig parameterises the generated startup scripts.
type ServerConfig struct {
	MainClass   string `json:"main_class"`
	Map         string `json:"map"`
	Cards       string `json:"cards"`
	Conts       int    `json:"conts"`
	Time        int    `json:"time"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			WorkDir:       ".luxxit",
			JavaDir:       ".java",
			GameDir:       ".lux",
			MavenDir:      ".maven",
			FernflowerDir: ".fernflower",
			ProjectDir:    "Luxxit",
			InfoFile:      ".info",
		},
		Sources: SourcesConfig{
			JDKWindows: Source{URL: "https://github.com/adoptium/temurin23-binaries/releases/download/jdk-23.0.2%2B7/OpenJDK23U-jdk_x64_windows_hotspot_23.0.2_7.zip"},
			JDKLinux:   Source{URL: "https://github.com/adoptium/temurin23-binaries/releases/download/jdk-23.0.2%2B7/OpenJDK23U-jdk_x64_linux_hotspot_23.0.2_7.tar.gz"},
			Game:       Source{URL: "https://s3.amazonaws.com/sillysoft/LuxDelux-linux.tgz"},
			Maven:      Source{URL: "https://qwertz.app/downloads/LuxApp/apache-maven-3.9.11-bin.zip"},
			Fernflower: Source{URL: "https://qwertz.app/downloads/LuxApp/fernflower.jar"},
			Exe4jLib:   Source{URL: "https://qwertz.app/downloads/LuxApp/exe4jlib.jar"},
			UpdateFiles: []Source{
				{URL: "https://raw.githubusercontent.com/LuxDlx/Luxxit-BuildTools/refs/heads/master/renames.txt"},
				{URL: "https://raw.githubusercontent.com/LuxDlx/Luxxit-BuildTools/refs/heads/master/luxxit.patch"},
			},
		},
		Tools: ToolsConfig{
			MaxCommandOutputSize: 10 * 1024 * 1024,
			GracefulShutdownMs:   2000,
			DecompileTimeout:     1800,
			BuildTimeout:         1800,
			PatchTimeout:         120,
			DownloadTimeout:      1800,
			ParallelDownloads:    3,
			ProgressIntervalMs:   500,
		},
		Build: BuildConfig{
			GameJar:       "LuxCore.jar",
			GameJarDir:    "LuxDelux",
			MavenHome:     "",
			ArtifactName:  "LuxCore-1.0.jar",
			OutputJar:     "Luxxit.jar",
			MavenArgs:     []string{"-X"},
			PatchFile:     "luxxit.patch",
			RenamesFile:   "renames.txt",
			ResourceExts:  []string{".png", ".html", ".properties", ".wav", ".jpg", ".gif", ".txt", ".ttf", ".jar"},
			SupportDir:    "Support",
			JavaOutputDir: "java",
		},
		Server: ServerConfig{
			MainClass:   "com.sillysoft.lux.Lux",
			Map:         "RomanEmpireII",
			Cards:       "4e3",
			Conts:       5,
			Time:        30,
			Description: "LuxxitPoweredServer!",
			Public:      true,
		},
	}
}
