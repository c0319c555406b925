package sqlinline

const QWorkerClaimJob = `--sql 4e7c0a95-6d28-4b31-8f4a-c19e3b57d062
with next_job as (
    select id
    from generation_jobs
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update generation_jobs
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_job)
    returning id, project_id, device_id, task_type, provider, segment_index, payload_json
)
select * from updated;
`
