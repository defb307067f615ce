// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package operation runs filebox batch jobs.

🎯 Purpose:
- Run each job off the caller's goroutine
- Stream the job's events back in order
- Keep at most one job per family in flight

🔄 Flow:
1. A caller hands the Runner a Source (rename, hyperlink or image job)
2. The Runner rejects the start if the family is busy (ErrJobAlreadyRunning)
3. The Source runs on its own goroutine and its events arrive on Job.Events
4. The channel closes after the end event

⚡ Cancellation:
Job.Cancel cancels the context the Source was started with. Sources check it
between entries, so work already applied stays applied.

🔍 Example:

	r := operation.NewRunner()
	job, err := r.Start(ctx, operation.FamilyRename, operation.SourceFunc(func(ctx context.Context) iter.Seq[event.Event] {
		return rename.New(nil).Run(ctx, params)
	}))
	if err != nil {
		return err
	}
	for ev := range job.Events() {
		console.Emit(ev)
	}
*/
package operation
