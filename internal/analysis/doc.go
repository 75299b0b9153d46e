// Package analysis summarises how well a playback kept its frame interval.
//
//   - [Summarize]: mean, p95 and max cost, overruns and drift
//   - [StutterPeriod]: dominant period of cost spikes, via [PowerSpectrum]
//   - [PlotPacing], [PlotSpectrum]: asciigraph charts for the report command
package analysis
