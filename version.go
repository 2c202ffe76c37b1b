package purgatory

// Version is the library and CLI release version.
const Version = "0.4.1"
