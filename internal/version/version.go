package version

// Version is the current blkhist version
const Version = "0.1.0"
