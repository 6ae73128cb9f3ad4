package core

// Product is the vendor product name reported to HMRC.
const Product = "mtd-vat"

// Version is the build version, set with
// -ldflags "-X github.com/go-training/mtd-vat/pkg/core.Version=x.y.z".
var Version = "0.1.0"
