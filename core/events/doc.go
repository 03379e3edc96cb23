// Package events defines the typed event contract consumed by the
// orchestration loop.
//
// Event kinds are grouped by source-facing namespaces:
//
//   - operator.*
//   - provider.*
//   - playback.*
//   - clock.*
//
// Semantics used across the package:
//
//   - RequestID: correlation id attached to a provider invocation; a
//     completion whose RequestID no longer matches the live request for its
//     provider kind is stale and must be discarded without effect.
//   - Tick: periodic clock event carrying the current time, used for
//     idle-timeout evaluation.
//
// operator events
//
//   - OperatorPushToTalkPressed (operator.push_to_talk_pressed): the talk
//     button went down; recording should begin.
//   - OperatorPushToTalkReleased (operator.push_to_talk_released): the talk
//     button went up; recording ends and transcription begins.
//   - OperatorEmergencyStop (operator.emergency_stop): halt all output and
//     freeze the conversation until an explicit resume.
//   - OperatorResume (operator.resume): leave the emergency-stopped phase.
//   - OperatorForceReset (operator.force_reset): abandon the current turn and
//     return to idle.
//
// provider events
//
//   - TranscriptionSucceeded (provider.transcription_succeeded): speech-to-text
//     finished for the correlated request.
//   - TranscriptionFailed (provider.transcription_failed): speech-to-text
//     errored or timed out.
//   - ChatSucceeded (provider.chat_succeeded): the chat model produced a reply.
//   - ChatFailed (provider.chat_failed): the chat model errored or timed out.
//   - SummarySucceeded (provider.summary_succeeded): the session summary was
//     generated and persisted.
//   - SummaryFailed (provider.summary_failed): summary generation or the
//     persistence write failed.
//
// playback events
//
//   - PlaybackFinished (playback.finished): the client finished playing the
//     named utterance, or playback was interrupted.
//
// clock events
//
//   - Tick (clock.tick): periodic tick carrying the loop's current time.
package events
