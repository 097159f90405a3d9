package buildinfo

const Graffiti = "______ ___________ _____ ___________ _____ \n| ___ \\  ___| ___ \\  __ \\  ___| ___ \\_   _|\n| |_/ / |__ | |_/ / /  \\/ |__ | |_/ / | |  \n|  __/|  __||    /| |   |  __||  __/  | |  \n| |   | |___| |\\ \\| \\__/\\ |___| |     | |  \n\\_|   \\____/\\_| \\_|\\____/____/\\_|     \\_/  \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "PERCEPT"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
