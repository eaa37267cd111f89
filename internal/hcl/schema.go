package hcl

// fileRoot is the top-level structure of an f2e.hcl file.
type fileRoot struct {
	Project string            `hcl:"project"`
	UseJade bool              `hcl:"use_jade"`
	Assets  []string          `hcl:"assets,optional"`
	Scripts []string          `hcl:"scripts,optional"`
	Styles  []string          `hcl:"styles,optional"`
	Define  map[string]string `hcl:"define,optional"`
	Locals  map[string]string `hcl:"locals,optional"`

	Server  *serverBlock  `hcl:"server,block"`
	Sass    *sassBlock    `hcl:"sass,block"`
	Archive *archiveBlock `hcl:"archive,block"`
}

type serverBlock struct {
	Port int `hcl:"port,optional"`
}

type sassBlock struct {
	Binary string `hcl:"binary,optional"`
}

type archiveBlock struct {
	Dir    string       `hcl:"dir,optional"`
	Upload *uploadBlock `hcl:"upload,block"`
}

type uploadBlock struct {
	Endpoint  string `hcl:"endpoint"`
	Bucket    string `hcl:"bucket"`
	Region    string `hcl:"region,optional"`
	Prefix    string `hcl:"prefix,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	UseSSL    bool   `hcl:"use_ssl,optional"`
}
