package datafunc

// Version is overridden at release time with
// -ldflags "-X github.com/reoring/datafunc.Version=v1.2.3".
var Version = "dev"
