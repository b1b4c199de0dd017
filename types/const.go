package types

const floatCmpEpsilon = 1e-30

// Degrees per radian.
const RadDeg = 57.29577951308232

// Radians per degree.
const DegRad = 1.0 / RadDeg
