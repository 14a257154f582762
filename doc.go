// Package prism turns MCMC sampler output into corner-plot animations.
//
// The input is a sample cube: T iterations of an N-walker ensemble
// exploring a D-dimensional posterior. Corner renders one corner plot
// per iteration, with per-dimension marginals on the diagonal and
// pairwise scatters below it, and returns the frames as an Animation
// that can be saved as AVI, GIF, animated PNG or an H.264 container, or
// inlined into HTML.
//
// Axis extents and histogram bins are fixed from the whole chain before
// any frame renders, so the geometry holds still while the walker cloud
// contracts onto the posterior. Chains longer than a few hundred frames
// are thinned to a target playback length, and the histogram resolution
// follows the final iteration's spread, keeping the settled posterior
// well resolved no matter how wide the burn-in wandered.
//
//	c, _ := cube.FromSlice(samples, iterations, walkers, dims)
//	anim, err := prism.Corner(c, prism.Options{
//		Labels: []string{"m", "b"},
//		Truths: []float64{2.2, 0.5},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := anim.Save("corner.gif", anim.FPS()); err != nil {
//		log.Fatal(err)
//	}
package prism
