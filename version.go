package notesnook

// Version exposes the version of the library.
const Version = "0.4.0"
