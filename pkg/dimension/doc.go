// Package dimension estimates the box-counting (Minkowski–Bouligand)
// dimension of a fractal boundary from an inside/outside pixel mask.
//
// A pixel is on the boundary when it is inside and at least one of its four
// neighbours is outside. For each box size s the image is tiled with s×s
// boxes and the boxes containing a boundary pixel are counted. Plotting
// ln(count) against ln(1/s) gives a line whose slope is the estimate:
//
//	est := dimension.Estimator{InitialSize: 512}
//	res, err := est.Estimate(ctx, grid)
//	fmt.Printf("D ≈ %.3f\n", res.Dimension)
//
// The slope comes from [Fit], a least-squares fit computed as the Pearson
// correlation scaled by the ratio of sample standard deviations.
package dimension
