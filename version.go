package arbor

// Version is the current release of the arbor library.
const Version = "0.3.0"
